//go:build darwin

package platform

const current = Apple
