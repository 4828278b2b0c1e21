// Package config loads the CoreGym client configuration.
//
// # Resolution Order
//
//  1. Built-in defaults (the hosted auth, workout and booking services)
//  2. The TOML file, ~/.config/coregym/config.toml unless a path is given
//  3. COREGYM_* environment variables
//
// A missing file is not an error. Empty values in the file or environment
// keep the value from the previous layer.
//
// # TOML Format
//
//	signin_url       = "https://auth.example.com/api/Auth/signin"
//	register_url     = "https://auth.example.com/api/Auth/register"
//	workouts_url     = "https://workouts.example.com/api/workout"
//	bookings_url     = "https://bookings.example.com/api/Bookings"
//	request_timeout  = "15s"
//	refresh_interval = "0s"          # 0 disables automatic refresh
//	transport        = "http"        # or "resty"
//	log_file         = "~/.local/state/coregym/coregym.log"
//	log_level        = "info"
//	debug            = false         # dump HTTP traffic to the log
//	session_file     = "~/.local/state/coregym/session.toml"
//
// Every key has a matching variable: signin_url is COREGYM_SIGNIN_URL,
// debug is COREGYM_DEBUG, and so on.
//
// # Errors
//
// Load fails on unreadable files, invalid TOML, an unknown transport, or
// durations that do not parse. Paths starting with ~ are expanded against
// the home directory.
package config
