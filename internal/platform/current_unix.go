//go:build unix && !darwin

package platform

const current = Unix
