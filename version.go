package mosig

// Version of the mosig module.
const Version = "0.3.0"

// Release returns major, minor and teeny components of Version.
func Release() (int, int, int) {
	return 0, 3, 0
}
