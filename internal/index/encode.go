package index

import (
	"bytes"
	"encoding/binary"
)

// key = invTime(8) + 0x00 + slug
// 先翻转符号位再取反，1970 年以前的时间也能按字节序倒序排列
func makeTimeSlugKey(unixNano int64, slug string) []byte {
	buf := make([]byte, 8, 8+1+len(slug))
	binary.BigEndian.PutUint64(buf, ^(uint64(unixNano) ^ 1<<63))
	buf = append(buf, 0x00)
	buf = append(buf, slug...)
	return buf
}

func slugFromTimeSlugKey(k []byte) string {
	if len(k) < 8+2 || k[8] != 0x00 {
		return ""
	}
	return string(bytes.Clone(k[9:]))
}

func makeOrderKey(pos int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(pos))
	return buf
}
