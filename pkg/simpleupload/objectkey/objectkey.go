// Package objectkey derives storage object keys from file names according to
// a destination's key-naming strategy.
package objectkey

import (
	"strings"

	"github.com/google/uuid"
)

// Strategy defines the interface for object key naming strategies
type Strategy interface {
	// Key derives the object key for a file name. The args value carries
	// destination-specific data through to custom strategies and is nil when
	// the destination configures none.
	Key(fileName string, args any) string
}

// RootStrategy places files at the top of the bucket, key equals file name
type RootStrategy struct{}

// Root returns the strategy that stores files at the bucket root.
func Root() Strategy {
	return RootStrategy{}
}

func (RootStrategy) Key(fileName string, _ any) string {
	return fileName
}

// PrefixStrategy nests files under a fixed folder prefix
type PrefixStrategy struct {
	// Prefix is used with surrounding slashes stripped. A prefix that strips
	// down to the empty string still contributes its separator, producing a
	// key with a leading slash.
	Prefix string
}

// Prefix returns a strategy that joins the given folder prefix with the file
// name. Leading and trailing slashes on the prefix are ignored.
func Prefix(p string) Strategy {
	return PrefixStrategy{Prefix: p}
}

func (s PrefixStrategy) Key(fileName string, _ any) string {
	return strings.Trim(s.Prefix, "/") + "/" + fileName
}

// FuncStrategy delegates key naming to a caller-supplied function
type FuncStrategy struct {
	KeyFunc func(fileName string, args any) string
}

// Func returns a strategy backed by fn. The function owns key-naming policy
// entirely; its result is used verbatim.
func Func(fn func(fileName string, args any) string) Strategy {
	return FuncStrategy{KeyFunc: fn}
}

func (s FuncStrategy) Key(fileName string, args any) string {
	return s.KeyFunc(fileName, args)
}

// UUIDFolderStrategy nests each file under a random per-upload folder so that
// concurrent uploads of the same file name never collide.
type UUIDFolderStrategy struct {
	Prefix string
}

// UUIDFolder returns a strategy that generates a fresh UUID folder per call,
// optionally nested under a fixed prefix.
//
// Example:
//
//	objectkey.UUIDFolder("uploads").Key("a.png", nil)
//	// uploads/5f0c3f9e-8a21-4a8f-9d2e-0c7f1f6b1a90/a.png
func UUIDFolder(prefix string) Strategy {
	return UUIDFolderStrategy{Prefix: prefix}
}

func (s UUIDFolderStrategy) Key(fileName string, _ any) string {
	folder := uuid.NewString()
	if trimmed := strings.Trim(s.Prefix, "/"); trimmed != "" {
		return trimmed + "/" + folder + "/" + fileName
	}
	return folder + "/" + fileName
}

// FromString maps a textual strategy value to a Strategy: the literal "/"
// selects Root, anything else selects Prefix. This mirrors how key strategies
// are written in flat configuration sources.
func FromString(s string) Strategy {
	if s == "/" {
		return Root()
	}
	return Prefix(s)
}

// Build derives an object key using the given strategy. A nil strategy
// behaves as Root.
func Build(s Strategy, fileName string, args any) string {
	if s == nil {
		return fileName
	}
	return s.Key(fileName, args)
}
