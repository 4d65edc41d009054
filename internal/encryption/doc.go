// Package encryption reads and writes file containers: a short text header naming the
// original file and its IV, followed by the AES-256-CBC ciphertext of its content.
// Keys are either generated and exported to a sidecar key file, or derived from a
// password with PBKDF2. All outputs are written to temporary files first; callers
// relocate and then delete them.
package encryption
