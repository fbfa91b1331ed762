package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "metadata:category:BODY_SITE", MetadataCategory("BODY_SITE"))
	assert.Equal(t, "test:samples-represented", ContextSamples("test"))
	assert.Equal(t, "test:features-represented", ContextFeatures("test"))
	assert.Equal(t, "test:sample:UNTAGGED_S1", ContextSampleData("test", "UNTAGGED_S1"))
}

func TestTagged(t *testing.T) {
	assert.Equal(t, "UNTAGGED_S1", Tagged(DefaultTag, "S1"))
	assert.Equal(t, "foo_10317.123", Tagged("foo", "10317.123"))
}

func TestSplitTagged(t *testing.T) {
	tag, id, ok := SplitTagged("UNTAGGED_S1")
	assert.True(t, ok)
	assert.Equal(t, "UNTAGGED", tag)
	assert.Equal(t, "S1", id)

	// Sample IDs may themselves contain underscores; only the first one
	// separates the tag.
	tag, id, ok = SplitTagged("foo_a_b")
	assert.True(t, ok)
	assert.Equal(t, "foo", tag)
	assert.Equal(t, "a_b", id)

	_, id, ok = SplitTagged("plain")
	assert.False(t, ok)
	assert.Equal(t, "plain", id)
}

func TestFetched(t *testing.T) {
	assert.Equal(t, "S1.UNTAGGED", Fetched("S1", DefaultTag))
	assert.Equal(t, "S1.foo", Fetched("S1", "foo"))
}
