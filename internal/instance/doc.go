// Package instance locates and parses the per-instance device files.
//
// Each device server instance is described by one INI file named
// "<instance>.conf" inside the instance directory. The directory is chosen by
// priority:
//
//  1. The --dir flag
//  2. The TANGO_CONFIG_DIR environment variable
//  3. DefaultDir (/opt/tango/etc)
//
// File layout:
//
//	[device]
//	name  = lab/motor/1
//	class = MotorCtrl
//
//	[properties]
//	host     = 10.0.0.5
//	channels = 1,2,3
//
// Existence and readability are checked before the file is parsed, so a
// missing or unreadable file never reaches the registry.
package instance
