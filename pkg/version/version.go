package version

// version is the server build version. Clients must present an exactly
// matching version string during the join handshake.
var version = "0.4.2"

func Get() string {
	return version
}
