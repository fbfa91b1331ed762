package fetch

import "errors"

// ErrNoSamplesInContext is returned by TableFromSamples when none of the
// requested samples exist in the context.
var ErrNoSamplesInContext = errors.New("no requested samples in context")

// ErrNoSampleMetadata is returned by SampleMetadata when none of the
// requested identifiers resolve to stored metadata. The message wording is
// part of the service contract.
var ErrNoSampleMetadata = errors.New("None of the samples requested have metadata")

// ErrUnknownCategory is returned when a restrict-to list names a category
// absent from the metadata corpus.
var ErrUnknownCategory = errors.New("unknown metadata category")
