package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxMagic bounds the magic numbers returned by Magic.
const MaxMagic = 1_000_000

var (
	mu   sync.Mutex
	rng  *rand.Rand
	mono io.Reader
)

func init() {
	// Seed from crypto/rand so request ids and magic numbers are not
	// predictable across restarts.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng = rand.New(rand.NewSource(seed))
	mono = ulid.Monotonic(rng, 0)
}

// New returns a ULID string (time-sortable identifier).
//
// Used as the request id: it is echoed in X-Request-ID and attached to
// every log line written while serving the request.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Monotonic entropy overflowed within one millisecond.
		panic(err)
	}
	return id.String()
}

// Magic returns a random order correlation tag in [0, MaxMagic).
func Magic() int64 {
	mu.Lock()
	defer mu.Unlock()

	return rng.Int63n(MaxMagic)
}
