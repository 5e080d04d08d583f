package kom

import (
	"encoding/xml"
	"fmt"
	"hash/crc32"
)

// Manifest is the structured content of a crc.xml entry: one checksum
// item per archive entry, keyed by name.
//
// Checksums are IEEE CRC-32 over the entry's stored (compressed) bytes,
// rendered as eight lower-case hex digits. Size is the uncompressed
// payload length.
type Manifest struct {
	version string
	items   []ManifestItem
}

// ManifestItem is one entry's checksum line in the manifest.
type ManifestItem struct {
	Name     string `xml:"Name,attr"`
	Size     uint32 `xml:"Size,attr"`
	Version  string `xml:"Version,attr"`
	CheckSum string `xml:"CheckSum,attr"`
}

type manifestXML struct {
	XMLName xml.Name `xml:"FileInfo"`
	Version struct {
		Item struct {
			Name string `xml:"Name,attr"`
		} `xml:"Item"`
	} `xml:"Version"`
	File struct {
		Items []ManifestItem `xml:"Item"`
	} `xml:"File"`
}

// NewManifest returns an empty manifest for the supported format version.
func NewManifest() *Manifest {
	return &Manifest{version: FormatVersion}
}

// ParseManifest decodes an existing crc.xml payload.
func ParseManifest(data []byte) (*Manifest, error) {
	var doc manifestXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kom: parse crc.xml: %w", err)
	}
	return &Manifest{
		version: doc.Version.Item.Name,
		items:   doc.File.Items,
	}, nil
}

// Checksum computes the CRC-32 recorded in crc.xml for one entry's
// stored bytes.
func Checksum(stored []byte) uint32 {
	return crc32.ChecksumIEEE(stored)
}

// Add appends a checksum item for one entry.
func (m *Manifest) Add(name string, size uint32, sum uint32) {
	m.items = append(m.items, ManifestItem{
		Name:     name,
		Size:     size,
		Version:  "0",
		CheckSum: fmt.Sprintf("%08x", sum),
	})
}

// Items returns the manifest's checksum items in order.
func (m *Manifest) Items() []ManifestItem {
	out := make([]ManifestItem, len(m.items))
	copy(out, m.items)
	return out
}

// Lookup returns the checksum item for the named entry.
func (m *Manifest) Lookup(name string) (ManifestItem, bool) {
	for _, it := range m.items {
		if it.Name == name {
			return it, true
		}
	}
	return ManifestItem{}, false
}

// FormatVersion returns the version identifier recorded in the manifest.
func (m *Manifest) FormatVersion() string {
	return m.version
}

// Encode renders the manifest as the ASCII XML document stored in the
// crc.xml entry. Encoding is deterministic for a given item order.
func (m *Manifest) Encode() []byte {
	var doc manifestXML
	doc.Version.Item.Name = m.version
	doc.File.Items = m.items

	body, err := xml.MarshalIndent(&doc, "", "    ")
	if err != nil {
		// The document is built from plain attribute structs; marshaling
		// cannot fail.
		panic(err)
	}

	out := make([]byte, 0, len(body)+64)
	out = append(out, `<?xml version="1.0" encoding="ascii"?>`...)
	out = append(out, '\n')
	out = append(out, body...)
	out = append(out, '\n')
	return out
}
