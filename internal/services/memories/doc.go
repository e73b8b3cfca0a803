// Package memorysvc stores a profile's memories: dated entries with an
// optional location, image and tags. Listing supports a favourites-only
// switch and CEL filter expressions evaluated against each memory, e.g.
//
//	memory.year == 2024 && "praia" in memory.tags
//	memory.title.contains("viagem") || memory.favorite
package memorysvc
