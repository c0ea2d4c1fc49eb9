package versioning

// Set through -ldflags "-X github.com/CultureBridge/bridge-relayer/versioning.Commit=..." at build time
var (
	Commit    = "unknown"
	Branch    = "unknown"
	BuildTime = "unknown"
)
