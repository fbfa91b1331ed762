// Package keys centralizes the key-value store layout shared by the admin
// and fetch packages.
//
// Layout:
//
//	state:contexts                   hash  name -> description
//	metadata:categories-represented  set   all known category names
//	metadata:samples-represented     set   all sample IDs with metadata
//	metadata:category:<cat>          hash  sampleID -> value (non-null only)
//	<ctx>:samples-represented        set   tagged sample IDs loaded in ctx
//	<ctx>:features-represented       set   feature IDs loaded in ctx
//	<ctx>:sample:<tag>_<id>          hash  featureID -> count (nonzero only)
package keys

import "strings"

// Contexts is the hash of context name -> description.
const Contexts = "state:contexts"

// MetadataCategories is the set of all known metadata category names.
const MetadataCategories = "metadata:categories-represented"

// MetadataSamples is the set of all sample IDs with stored metadata.
const MetadataSamples = "metadata:samples-represented"

// DefaultTag marks samples loaded without an explicit tag.
const DefaultTag = "UNTAGGED"

// MetadataCategory returns the hash key holding sampleID -> value for one
// category.
func MetadataCategory(category string) string {
	return "metadata:category:" + category
}

// ContextSamples returns the set key of tagged sample IDs loaded into a
// context.
func ContextSamples(context string) string {
	return context + ":samples-represented"
}

// ContextFeatures returns the set key of feature IDs loaded into a context.
func ContextFeatures(context string) string {
	return context + ":features-represented"
}

// ContextSampleData returns the hash key holding featureID -> count for one
// tagged sample in a context.
func ContextSampleData(context, taggedID string) string {
	return context + ":sample:" + taggedID
}

// Tagged combines a tag and a sample ID into the stored identifier form
// <tag>_<id>. Tags must not contain underscores; admin validates this at
// load time.
func Tagged(tag, id string) string {
	return tag + "_" + id
}

// SplitTagged splits a stored identifier into its tag and base sample ID.
// The second return is false if the identifier carries no tag separator.
func SplitTagged(stored string) (tag, id string, ok bool) {
	i := strings.Index(stored, "_")
	if i < 0 {
		return "", stored, false
	}
	return stored[:i], stored[i+1:], true
}

// Fetched renders the externally visible identifier <id>.<tag> for a
// stored tagged sample.
func Fetched(id, tag string) string {
	return id + "." + tag
}
