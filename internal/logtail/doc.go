// Package logtail reads the end of the kimaideck log file and styles it
// for the terminal simulator.
//
// # Reading
//
// Read keeps a ring buffer of the last maxLines lines while scanning the
// file once, so memory stays bounded by the number of lines requested and
// not by the file size. A missing file is not an error; the terminal
// driver may not have logged anything yet.
//
//	lines, err := logtail.Read("/tmp/kimaideck.log", 5)
//
// # Format
//
// Lines are expected in the format of slog's text handler:
//
//	time=2026-10-17T09:12:03.114+02:00 level=INFO msg="switched page" page=customers
//
// Parse extracts time, level and message and leaves the remaining
// attributes as one string. Quoted values may contain spaces and escaped
// quotes.
//
// # Colorization
//
// Palette renders parsed lines with lipgloss styles: the time of day in
// gray, the level in a bold colour per severity (green, yellow, red,
// cyan), the message plain and the attributes in blue. Lines that do not
// parse, such as panic traces, are passed through untouched.
package logtail
