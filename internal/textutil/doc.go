// Package textutil builds file names from user-supplied vibe names.
package textutil
