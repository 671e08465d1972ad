package item

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/synapse-kb/synapse/internal/domain"
	domitem "github.com/synapse-kb/synapse/internal/domain/item"
)

// Hash field names for stored items.
const (
	fieldClass   = "class"
	fieldTitle   = "title"
	fieldURL     = "url"
	fieldContent = "content"
	fieldTags    = "tags"
	fieldBlob    = "blob"
	fieldCreated = "created"
	fieldVector  = "vector"
)

const keyPrefix = domain.KeyPrefix + "item:"

func itemKey(id string) string {
	return keyPrefix + id
}

func idFromKey(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

// buildHashFields converts a domain Item into a flat map[string]string for HSET.
// Empty optional fields are omitted so the hash stays sparse.
func buildHashFields(it *domitem.Item) map[string]string {
	m := map[string]string{
		fieldClass:   string(it.Class()),
		fieldCreated: strconv.FormatInt(it.CreatedAt().Unix(), 10),
	}
	if it.Title() != "" {
		m[fieldTitle] = it.Title()
	}
	if it.SourceURL() != "" {
		m[fieldURL] = it.SourceURL()
	}
	if it.Content() != "" {
		m[fieldContent] = it.Content()
	}
	if len(it.Tags()) > 0 {
		m[fieldTags] = strings.Join(it.Tags(), ",")
	}
	if it.BlobKey() != "" {
		m[fieldBlob] = it.BlobKey()
	}
	if len(it.Vector()) > 0 {
		m[fieldVector] = vectorToBytes(it.Vector())
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Item.
func parseHashFields(id string, m map[string]string) domitem.Item {
	var tags []string
	if raw := m[fieldTags]; raw != "" {
		tags = strings.Split(raw, ",")
	}

	var created time.Time
	if raw := m[fieldCreated]; raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			created = time.Unix(unix, 0).UTC()
		}
	}

	var vector []float32
	if raw := m[fieldVector]; raw != "" {
		vector = bytesToVector(raw)
	}

	return domitem.Reconstruct(
		id, domitem.Class(m[fieldClass]),
		m[fieldTitle], m[fieldURL], m[fieldContent],
		tags, m[fieldBlob],
		vector, created,
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
