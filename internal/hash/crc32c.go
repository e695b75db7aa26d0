package hash

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the Castagnoli checksum of data, as stored in snapshot
// headers and sent with S3 uploads.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}
