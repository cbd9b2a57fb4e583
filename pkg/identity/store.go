package identity

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-takeoff/pkg/encryption"
)

// State blob layout: magic, format version, CRC32 of the payload, payload
// length, then the snappy-compressed (optionally encrypted) JSON state.
const (
	stateMagic   = uint32(0x43544944) // "CTID"
	stateVersion = uint16(1)
	headerSize   = 4 + 2 + 4 + 4
)

var (
	ErrCorruptState = errors.New("identifier state blob corrupt")
	ErrBadMagic     = errors.New("not an identifier state blob")
)

// Store persists allocator state as an opaque blob, written atomically via
// a temp file and rename. An optional encryption engine protects the blob
// at rest.
type Store struct {
	path   string
	engine *encryption.Engine
}

// NewStore creates a store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewEncryptedStore creates a store that seals the blob with the engine.
func NewEncryptedStore(path string, engine *encryption.Engine) *Store {
	return &Store{path: path, engine: engine}
}

// Path returns the file the blob is persisted at.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted state. A missing file is the initial empty
// state, not an error.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyState(), nil
		}
		return State{}, fmt.Errorf("read identifier state: %w", err)
	}

	if len(data) < headerSize {
		return State{}, ErrCorruptState
	}
	if binary.LittleEndian.Uint32(data[0:4]) != stateMagic {
		return State{}, ErrBadMagic
	}
	if binary.LittleEndian.Uint16(data[4:6]) != stateVersion {
		return State{}, fmt.Errorf("unsupported identifier state version %d", binary.LittleEndian.Uint16(data[4:6]))
	}
	checksum := binary.LittleEndian.Uint32(data[6:10])
	length := binary.LittleEndian.Uint32(data[10:14])

	payload := data[headerSize:]
	if uint32(len(payload)) != length {
		return State{}, ErrCorruptState
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return State{}, ErrCorruptState
	}

	if s.engine != nil {
		payload, err = s.engine.Decrypt(payload)
		if err != nil {
			return State{}, fmt.Errorf("decrypt identifier state: %w", err)
		}
	}

	decoded, err := snappy.Decode(nil, payload)
	if err != nil {
		return State{}, fmt.Errorf("decompress identifier state: %w", err)
	}

	var state State
	if err := json.Unmarshal(decoded, &state); err != nil {
		return State{}, fmt.Errorf("decode identifier state: %w", err)
	}
	if state.Assignments == nil {
		state.Assignments = make(map[string]int)
	}
	return state, nil
}

// Save writes the state blob atomically.
func (s *Store) Save(state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode identifier state: %w", err)
	}

	payload := snappy.Encode(nil, raw)
	if s.engine != nil {
		payload, err = s.engine.Encrypt(payload)
		if err != nil {
			return fmt.Errorf("encrypt identifier state: %w", err)
		}
	}

	blob := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(blob[0:4], stateMagic)
	binary.LittleEndian.PutUint16(blob[4:6], stateVersion)
	binary.LittleEndian.PutUint32(blob[6:10], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(blob[10:14], uint32(len(payload)))
	copy(blob[headerSize:], payload)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, blob, 0644); err != nil {
		return fmt.Errorf("write identifier state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace identifier state: %w", err)
	}
	return nil
}
