package steem

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
)

// The mainnet chain id, all zeroes. Prepended to the serialized transaction
// before hashing the signing digest.
var chainID = make([]byte, 32)

const expirationFormat = "2006-01-02T15:04:05"

// operation is one broadcastable operation: its protocol id, its wire name
// and its binary serialization for signing.
type operation interface {
	id() byte
	name() string
	serialize(w *bytes.Buffer)
}

type voteOperation struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

func (o voteOperation) id() byte     { return 0 }
func (o voteOperation) name() string { return "vote" }

func (o voteOperation) serialize(w *bytes.Buffer) {
	writeString(w, o.Voter)
	writeString(w, o.Author)
	writeString(w, o.Permlink)
	writeUint16(w, uint16(o.Weight))
}

type commentOperation struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

func (o commentOperation) id() byte     { return 1 }
func (o commentOperation) name() string { return "comment" }

func (o commentOperation) serialize(w *bytes.Buffer) {
	writeString(w, o.ParentAuthor)
	writeString(w, o.ParentPermlink)
	writeString(w, o.Author)
	writeString(w, o.Permlink)
	writeString(w, o.Title)
	writeString(w, o.Body)
	writeString(w, o.JSONMetadata)
}

type deleteCommentOperation struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

func (o deleteCommentOperation) id() byte     { return 17 }
func (o deleteCommentOperation) name() string { return "delete_comment" }

func (o deleteCommentOperation) serialize(w *bytes.Buffer) {
	writeString(w, o.Author)
	writeString(w, o.Permlink)
}

// transaction is the condenser wire form of a signed transaction.
type transaction struct {
	RefBlockNum    uint16      `json:"ref_block_num"`
	RefBlockPrefix uint32      `json:"ref_block_prefix"`
	Expiration     string      `json:"expiration"`
	Operations     []operation `json:"operations"`
	Extensions     []any       `json:"extensions"`
	Signatures     []string    `json:"signatures"`

	expiration time.Time
}

// MarshalJSON renders operations in their wire form, a two element array of
// name and payload.
func (t transaction) MarshalJSON() ([]byte, error) {
	ops := make([][2]any, len(t.Operations))
	for i, op := range t.Operations {
		ops[i] = [2]any{op.name(), op}
	}
	type wire struct {
		RefBlockNum    uint16   `json:"ref_block_num"`
		RefBlockPrefix uint32   `json:"ref_block_prefix"`
		Expiration     string   `json:"expiration"`
		Operations     [][2]any `json:"operations"`
		Extensions     []any    `json:"extensions"`
		Signatures     []string `json:"signatures"`
	}
	return json.Marshal(wire{
		RefBlockNum:    t.RefBlockNum,
		RefBlockPrefix: t.RefBlockPrefix,
		Expiration:     t.Expiration,
		Operations:     ops,
		Extensions:     t.Extensions,
		Signatures:     t.Signatures,
	})
}

// serialize renders the transaction in the binary form the signing digest is
// computed over.
func (t *transaction) serialize() []byte {
	var w bytes.Buffer
	writeUint16(&w, t.RefBlockNum)
	writeUint32(&w, t.RefBlockPrefix)
	writeUint32(&w, uint32(t.expiration.Unix()))
	writeUvarint(&w, uint64(len(t.Operations)))
	for _, op := range t.Operations {
		writeUvarint(&w, uint64(op.id()))
		op.serialize(&w)
	}
	writeUvarint(&w, 0) // extensions
	return w.Bytes()
}

func (t *transaction) digest() [32]byte {
	return sha256.Sum256(append(append([]byte(nil), chainID...), t.serialize()...))
}

// sign produces a canonical recoverable signature over the transaction. The
// deterministic signature only changes when the digest does, so non-canonical
// attempts bump the expiration by a second and try again.
func (t *transaction) sign(key *btcec.PrivateKey) {
	for {
		t.Expiration = t.expiration.Format(expirationFormat)
		digest := t.digest()
		sig := ecdsa.SignCompact(key, digest[:], true)
		if isCanonical(sig) {
			t.Signatures = []string{hex.EncodeToString(sig)}
			return
		}
		t.expiration = t.expiration.Add(time.Second)
	}
}

// isCanonical applies the chain's signature canonicality rule to a compact
// signature (header byte, then R and S).
func isCanonical(sig []byte) bool {
	return sig[1]&0x80 == 0 &&
		!(sig[1] == 0 && sig[2]&0x80 == 0) &&
		sig[33]&0x80 == 0 &&
		!(sig[33] == 0 && sig[34]&0x80 == 0)
}

func writeString(w *bytes.Buffer, s string) {
	writeUvarint(w, uint64(len(s)))
	w.WriteString(s)
}

func writeUvarint(w *bytes.Buffer, n uint64) {
	var buf [binary.MaxVarintLen64]byte
	w.Write(buf[:binary.PutUvarint(buf[:], n)])
}

func writeUint16(w *bytes.Buffer, n uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], n)
	w.Write(buf[:])
}

func writeUint32(w *bytes.Buffer, n uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	w.Write(buf[:])
}

// decodePostingKey parses a WIF encoded posting key.
func decodePostingKey(wif string) (*btcec.PrivateKey, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, err
	}
	return decoded.PrivKey, nil
}
