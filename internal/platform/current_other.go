//go:build !unix

package platform

const current = Other
