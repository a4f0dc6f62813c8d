package section

const (
	// Bit masks of the options field
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicContainerV1Opt is the version 1 magic number stored in bits 4-15 of the options field.
	MagicContainerV1Opt = 0xC410
)

// Magic is the four byte signature at the start of every archive file.
var Magic = [4]byte{'H', 'Y', 'B', 'F'}

// offset and section sizes in the archive file
const (
	HeaderSize       = 16         // fixed header size in bytes
	BlockEntrySize   = 40         // fixed block table entry size in bytes
	BlockTableOffset = HeaderSize // byte offset where the block table starts

	// MaxBlockCount bounds the block table so a corrupted count cannot trigger a huge allocation.
	MaxBlockCount = 1 << 16
)
