// Package ui holds the terminal artwork.
package ui

import "strings"

// Banner returns the ASCII-art banner with the flakerun logo
func Banner() string {
	banner := strings.Join([]string{
		`   ___ _       _                        `,
		`  / __| | __ _| | _____ _ __ _   _ _ __  `,
		` | |_ | |/ _' | |/ / _ \ '__| | | | '_ \ `,
		` |  _|| | (_| |   <  __/ |  | |_| | | | |`,
		` |_|  |_|\__,_|_|\_\___|_|   \__,_|_| |_|`,
	}, "\n")

	return banner
}
