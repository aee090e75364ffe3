package shipengine

// Version is the library version reported in the User-Agent header.
const Version = "0.4.0"

func userAgent() string {
	return "shipengine-go/" + Version + " (go)"
}
