// Package media classifies staged downloads as movies or TV episodes and
// finds the files inside a release folder that are worth transferring.
package media

import "fmt"

// Category is the library a transfer is destined for.
type Category int

const (
	Movie Category = iota
	TV
)

func (c Category) String() string {
	switch c {
	case Movie:
		return "movie"
	case TV:
		return "tv"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}
