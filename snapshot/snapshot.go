// Package snapshot stores gob-encoded values as checksummed files on an
// afero.Fs.
//
// File layout (all integers little endian):
//
//	[ 4: magic "SDS1" ] [ 8: payload length ] [ 8: farm fingerprint64 of payload ] [ payload ]
//
// A snapshot is written to "<name>.tmp", synced and then renamed over name, so
// readers see either the previous snapshot or the new one, never a torn file.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/cockroachdb/errors"
	farm "github.com/dgryski/go-farm"
	"github.com/spf13/afero"
)

const headerLen = 4 + 8 + 8

var magic = [4]byte{'S', 'D', 'S', '1'}

// ErrCorrupt is returned by Read for a file that is not a complete snapshot.
var ErrCorrupt = errors.New("snapshot: corrupt file")

// Write atomically replaces the snapshot called name with the gob encoding of v.
func Write(fs afero.Fs, name string, v any) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(v); err != nil {
		return errors.Wrap(err, "gob.Encode")
	}
	data := payload.Bytes()

	header := make([]byte, headerLen)
	copy(header, magic[:])
	binary.LittleEndian.PutUint64(header[4:12], uint64(len(data)))
	binary.LittleEndian.PutUint64(header[12:20], farm.Fingerprint64(data))

	tmpName := name + ".tmp"
	f, err := fs.Create(tmpName)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmpName)
	}
	if _, err := f.Write(header); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "sync %s", tmpName)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := fs.Rename(tmpName, name); err != nil {
		return errors.Wrapf(err, "rename %s", tmpName)
	}
	return nil
}

// Read decodes the snapshot called name into out, which must be a pointer.
func Read(fs afero.Fs, name string, out any) error {
	raw, err := afero.ReadFile(fs, name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if len(raw) < headerLen || !bytes.Equal(raw[:4], magic[:]) {
		return errors.Wrapf(ErrCorrupt, "%s: bad header", name)
	}
	size := binary.LittleEndian.Uint64(raw[4:12])
	sum := binary.LittleEndian.Uint64(raw[12:20])
	data := raw[headerLen:]
	if uint64(len(data)) != size {
		return errors.Wrapf(ErrCorrupt, "%s: payload is %d bytes, header says %d", name, len(data), size)
	}
	if farm.Fingerprint64(data) != sum {
		return errors.Wrapf(ErrCorrupt, "%s: checksum mismatch", name)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return errors.Wrapf(err, "gob.Decode %s", name)
	}
	return nil
}
