package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeLengthRoundTrip(t *testing.T) {
	cases := []int{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, MaxWordLength}
	for _, l := range cases {
		var buf bytes.Buffer
		if err := EncodeLength(&buf, l); err != nil {
			t.Fatalf("encode %d: %v", l, err)
		}
		got, err := DecodeLength(&buf)
		if err != nil {
			t.Fatalf("decode %d: %v", l, err)
		}
		if got != l {
			t.Fatalf("round trip mismatch: want %d got %d", l, got)
		}
	}
}

func TestEncodeLengthOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeLength(&buf, MaxWordLength+1); !errors.Is(err, ErrLengthOutOfRange) {
		t.Fatalf("expected ErrLengthOutOfRange, got %v", err)
	}
	if err := EncodeLength(&buf, -1); !errors.Is(err, ErrLengthOutOfRange) {
		t.Fatalf("expected ErrLengthOutOfRange for negative length, got %v", err)
	}
}

func TestWriteReadWordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWord(&buf, []byte("=name=admin")); err != nil {
		t.Fatalf("write: %v", err)
	}
	word, done, err := ReadWord(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if done {
		t.Fatalf("expected non-terminal word")
	}
	if string(word) != "=name=admin" {
		t.Fatalf("got %q", word)
	}
}

func TestReadWordEndOfSentenceMarker(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWord(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	word, done, err := ReadWord(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !done || word != nil {
		t.Fatalf("expected terminal empty word, got done=%v word=%v", done, word)
	}
}

func TestSentenceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	words := []string{"/login", "=name=admin", "=password=secret"}
	if err := WriteSentence(&buf, words); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSentence(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(words) {
		t.Fatalf("want %d words, got %d", len(words), len(got))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d: want %q got %q", i, words[i], got[i])
		}
	}
}

func TestReadBlockStopsOnDoneNotRe(t *testing.T) {
	var buf bytes.Buffer
	WriteSentence(&buf, []string{"!re", "=name=ether1"})
	WriteSentence(&buf, []string{"!re", "=name=ether2"})
	WriteSentence(&buf, []string{"!done"})

	block, err := ReadBlock(&buf)
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if len(block) != 3 {
		t.Fatalf("want 3 sentences, got %d", len(block))
	}
	if !IsTerminal(block[len(block)-1]) {
		t.Fatalf("last sentence must be terminal")
	}
}

func TestReadBlockDoneDominatesOverReInSameSentence(t *testing.T) {
	var buf bytes.Buffer
	WriteSentence(&buf, []string{"!re", "!done"})
	block, err := ReadBlock(&buf)
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if len(block) != 1 {
		t.Fatalf("expected block to end at the mixed sentence, got %d sentences", len(block))
	}
}

func TestReadBlockMissingTerminatorIsTruncated(t *testing.T) {
	r := strings.NewReader("")
	if _, err := ReadBlock(r); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated on empty stream, got %v", err)
	}
}

func TestDecodeLengthShortReadIsTruncated(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x80})
	if _, err := DecodeLength(buf); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
