package version

// Values injected at build time using the go linker -X options
var (
	GitHash   = "unknown"
	BuildTime = "unknown"
)
