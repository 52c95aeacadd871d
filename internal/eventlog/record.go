package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// Record encoding: varint headerLen | header | payload | crc32c(header|payload)
//
// Header layout: 8 bytes big-endian write timestamp (ms) followed by a JSON
// object carrying the event type and optional job scope.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

type recordMeta struct {
	Type  string `json:"type"`
	JobID string `json:"job_id,omitempty"`
}

// EncodeRecord frames a record for storage.
func EncodeRecord(tsMs int64, typ, jobID string, payload []byte) ([]byte, error) {
	meta, err := json.Marshal(recordMeta{Type: typ, JobID: jobID})
	if err != nil {
		return nil, err
	}
	header := make([]byte, 0, 8+len(meta))
	header = appendBE8(header, uint64(tsMs))
	header = append(header, meta...)

	out := make([]byte, 0, 10+len(header)+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(header)))
	out = append(out, tmp[:n]...)
	out = append(out, header...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out, nil
}

// DecodeRecord parses a stored record. Returns false on framing or checksum
// errors so callers can skip corrupt entries instead of failing the scan.
func DecodeRecord(seq uint64, b []byte) (Event, bool) {
	if len(b) < 1+8+4 {
		return Event{}, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 || hlen < 8 {
		return Event{}, false
	}
	if n+int(hlen)+4 > len(b) {
		return Event{}, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != expect {
		return Event{}, false
	}

	tsMs := int64(binary.BigEndian.Uint64(header[:8]))
	var meta recordMeta
	if err := json.Unmarshal(header[8:], &meta); err != nil {
		return Event{}, false
	}
	return Event{
		Sequence: seq,
		Type:     meta.Type,
		JobID:    meta.JobID,
		Payload:  append([]byte(nil), payload...),
		TsMs:     tsMs,
	}, true
}
