package recordio

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	c "github.com/unkn0wn-root/recordio/codec"
)

func TestEncodeFrameLayout(t *testing.T) {
	enc := NewEncoder[event](c.JSON[event]{})
	m := event{Type: "ATTACH_CONTAINER_OUTPUT", ContainerID: "123456789"}

	got, err := enc.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	payload := `{"type":"ATTACH_CONTAINER_OUTPUT","containerId":"123456789"}`
	want := strconv.Itoa(len(payload)) + "\n" + payload
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// TestEncodeDecodeTypeX uses a serializer that spaces its output like the
// common Python json.dumps default.
func TestEncodeDecodeTypeX(t *testing.T) {
	ser := SerializeFunc[map[string]string](func(m map[string]string) ([]byte, error) {
		return []byte(`{"type": "` + m["type"] + `"}`), nil
	})
	frame, err := NewEncoder[map[string]string](ser).Encode(map[string]string{"type": "X"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := "13\n{\"type\": \"X\"}"; string(frame) != want {
		t.Fatalf("got %q want %q", frame, want)
	}

	got := mustDecode(t, NewDecoder[map[string]string](c.JSON[map[string]string]{}), frame)
	if len(got) != 1 || len(got[0]) != 1 || got[0]["type"] != "X" {
		t.Fatalf("got %v", got)
	}
}

func TestEncodeSerializerError(t *testing.T) {
	boom := errors.New("boom")
	enc := NewEncoder[int](SerializeFunc[int](func(int) ([]byte, error) { return nil, boom }))

	dst := []byte("keep")
	out, err := enc.AppendEncode(dst, 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if string(out) != "keep" {
		t.Fatalf("dst modified: %q", out)
	}
}

func TestDynamicSerializerResult(t *testing.T) {
	enc := NewEncoder[any](Dynamic[any](func(v any) (any, error) { return v, nil }))

	for _, v := range []any{"text", nil, 7, []rune("x")} {
		if _, err := enc.Encode(v); !errors.Is(err, ErrInvalidSerializationResult) {
			t.Fatalf("Encode(%#v): expected ErrInvalidSerializationResult, got %v", v, err)
		}
	}

	got, err := enc.Encode([]byte("raw"))
	if err != nil || string(got) != "3\nraw" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func TestEncoderConcurrentUse(t *testing.T) {
	enc := NewEncoder[string](c.String{})
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := strconv.Itoa(i)
			for j := 0; j < 100; j++ {
				b, err := enc.Encode(s)
				if err != nil {
					errs <- err
					return
				}
				if want := strconv.Itoa(len(s)) + "\n" + s; string(b) != want {
					errs <- errors.New("got " + string(b) + " want " + want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
