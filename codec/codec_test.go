package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type event struct {
	Type string    `json:"type" cbor:"type" msgpack:"type"`
	N    int       `json:"n" cbor:"n" msgpack:"n"`
	At   time.Time `json:"at" cbor:"at" msgpack:"at"`
}

func roundTrip[V any](t *testing.T, name string, cd Codec[V], v V) V {
	t.Helper()
	b, err := cd.Encode(v)
	if err != nil {
		t.Fatalf("%s Encode: %v", name, err)
	}
	got, err := cd.Decode(b)
	if err != nil {
		t.Fatalf("%s Decode: %v", name, err)
	}
	return got
}

func TestStructCodecsRoundTrip(t *testing.T) {
	v := event{Type: "ATTACH_CONTAINER_OUTPUT", N: 42, At: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	codecs := map[string]Codec[event]{
		"json":         JSON[event]{},
		"cbor":         MustCBOR[event](false),
		"cbor-det":     MustCBOR[event](true),
		"msgpack":      Msgpack[event]{},
		"limit(json)":  Limit[event]{Inner: JSON[event]{}, MaxDecode: 1 << 10},
		"limit(unset)": Limit[event]{Inner: Msgpack[event]{}},
	}
	for name, cd := range codecs {
		got := roundTrip(t, name, cd, v)
		if got.Type != v.Type || got.N != v.N || !got.At.Equal(v.At) {
			t.Fatalf("%s: got %+v want %+v", name, got, v)
		}
	}
}

func TestCBORDeterministic(t *testing.T) {
	cd := MustCBOR[map[string]int](true)
	a, err := cd.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, err := cd.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("non-deterministic output: %x vs %x", a, b)
		}
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	cd := Limit[string]{Inner: String{}, MaxDecode: 3}
	if _, err := cd.Decode([]byte("abcd")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	if got, err := cd.Decode([]byte("abc")); err != nil || got != "abc" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	in := []byte("abc")
	out, err := Bytes{}.Decode(in)
	if err != nil {
		t.Fatal(err)
	}
	in[0] = 'X'
	if string(out) != "abc" {
		t.Fatalf("Decode aliased its input: %q", out)
	}
	if out, _ := (Bytes{}).Decode([]byte{}); out == nil {
		t.Fatalf("empty payload decoded to nil")
	}
}

func TestProtobufRoundTrip(t *testing.T) {
	cd := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	v, err := structpb.NewStruct(map[string]any{"type": "X", "n": 1.5})
	if err != nil {
		t.Fatal(err)
	}
	got := roundTrip[*structpb.Struct](t, "protobuf", cd, v)
	if !proto.Equal(got, v) {
		t.Fatalf("got %v want %v", got, v)
	}
	if _, err := cd.Decode([]byte{0xff, 0xff}); err == nil {
		t.Fatalf("expected error on garbage")
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	big := strings.Repeat("compressible ", 500)
	for _, algo := range []Algorithm{None, Zstd, LZ4} {
		cd, err := NewCompressed[string](String{}, algo)
		if err != nil {
			t.Fatalf("algo=%d: %v", algo, err)
		}
		for _, s := range []string{"", "x", big} {
			b, err := cd.Encode(s)
			if err != nil {
				t.Fatalf("algo=%d Encode: %v", algo, err)
			}
			if len(b) > len(s)+1 {
				t.Fatalf("algo=%d: encoded %d bytes for %d byte input", algo, len(b), len(s))
			}
			got, err := cd.Decode(b)
			if err != nil || got != s {
				t.Fatalf("algo=%d: got %d bytes err=%v", algo, len(got), err)
			}
		}
		if algo != None {
			b, _ := cd.Encode(big)
			if Algorithm(b[0]) != algo || len(b) >= len(big)/2 {
				t.Fatalf("algo=%d: expected compression, got flag=%d len=%d", algo, b[0], len(b))
			}
		}
		_ = cd.Close()
	}
}

func TestCompressedDecodesAnyAlgorithm(t *testing.T) {
	big := strings.Repeat("abc", 1000)
	zs, _ := NewCompressed[string](String{}, Zstd)
	l4, _ := NewCompressed[string](String{}, LZ4)
	defer zs.Close()
	defer l4.Close()

	b, err := zs.Encode(big)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := l4.Decode(b); err != nil || got != big {
		t.Fatalf("lz4 codec failed to decode zstd payload: %v", err)
	}
}

func TestCompressedRejectsBadInput(t *testing.T) {
	cd, _ := NewCompressed[string](String{}, Zstd)
	defer cd.Close()

	if _, err := cd.Decode(nil); err == nil {
		t.Fatalf("expected error on empty payload")
	}
	if _, err := cd.Decode([]byte{9, 1, 2}); err == nil {
		t.Fatalf("expected error on unknown algorithm")
	}
	if _, err := cd.Decode([]byte{byte(Zstd), 1, 2, 3}); err == nil {
		t.Fatalf("expected error on corrupt zstd data")
	}
	if _, err := NewCompressed[string](String{}, Algorithm(7)); err == nil {
		t.Fatalf("expected error on unknown algorithm")
	}
	if _, err := NewCompressed[string](nil, Zstd); err == nil {
		t.Fatalf("expected error on nil inner")
	}
}
