// Package colmap reads the text export of a COLMAP sparse reconstruction
// (cameras.txt, images.txt, points3D.txt) and the camera table of a COLMAP
// database.db.
//
// Parsers buffer the whole file before tokenising. images.txt observation
// lines routinely exceed bufio.Scanner's default token size, so input is split
// on newlines rather than scanned.
//
// Camera parameter arity is not checked when a table is parsed; it is checked
// when intrinsics are derived, which only happens for the camera that defines
// the scene.
package colmap
