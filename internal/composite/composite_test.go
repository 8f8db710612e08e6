package composite

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnyUserName/memecap/internal/fixture"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memFetcher serves fixture bytes by location and records the fetch order.
type memFetcher struct {
	files   map[string][]byte
	fetched []string
}

func (m *memFetcher) Fetch(_ context.Context, loc string) ([]byte, error) {
	m.fetched = append(m.fetched, loc)
	data, ok := m.files[loc]
	if !ok {
		return nil, &FetchError{Location: loc, Err: os.ErrNotExist}
	}
	return data, nil
}

func TestParse(t *testing.T) {
	cases := []struct {
		ref  string
		want Spec
	}{
		{"a.jpg", Spec{Single, []string{"a.jpg"}}},
		{"a.jpg|b.jpg", Spec{Vertical, []string{"a.jpg", "b.jpg"}}},
		{"a.jpg[]b.jpg[]c.jpg", Spec{Horizontal, []string{"a.jpg", "b.jpg", "c.jpg"}}},
		{"a[]b|c", Spec{Vertical, []string{"a[]b", "c"}}},
		{"http://x/y.png?q=1", Spec{Single, []string{"http://x/y.png?q=1"}}},
		{"a|", Spec{Vertical, []string{"a", ""}}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Parse(c.ref), c.ref)
	}
}

func TestResolve_VerticalShrinksToNarrowest(t *testing.T) {
	f := &memFetcher{files: map[string][]byte{
		"a.png": fixture.PNG(fixture.Gradient(100, 200)),
		"b.png": fixture.PNG(fixture.Gradient(50, 40)),
		"c.png": fixture.PNG(fixture.Gradient(80, 40)),
	}}
	l := NewLoader(f, zaptest.NewLogger(t))

	res, err := l.Resolve(context.Background(), "a.png|b.png|c.png")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, f.fetched)
	assert.Equal(t, Vertical, res.Spec.Kind)
	assert.False(t, res.Seq.Animated())
	assert.Equal(t, 50, res.Seq.Width())
	assert.Equal(t, 100+40+25, res.Seq.Height())
	assert.Equal(t, "png", res.Seq.Format)
}

func TestResolve_HorizontalShrinksToShortest(t *testing.T) {
	f := &memFetcher{files: map[string][]byte{
		"a.png": fixture.PNG(fixture.Gradient(200, 100)),
		"b.png": fixture.PNG(fixture.Gradient(40, 50)),
		"c.png": fixture.PNG(fixture.Gradient(40, 80)),
	}}
	l := NewLoader(f, zaptest.NewLogger(t))

	res, err := l.Resolve(context.Background(), "a.png[]b.png[]c.png")
	require.NoError(t, err)

	assert.Equal(t, Horizontal, res.Spec.Kind)
	assert.Equal(t, 50, res.Seq.Height())
	assert.Equal(t, 100+40+25, res.Seq.Width())
}

func TestResolve_OrderPreserved(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	f := &memFetcher{files: map[string][]byte{
		"a.png": fixture.PNG(fixture.Solid(200, 20, red)),
		"b.png": fixture.PNG(fixture.Solid(100, 20, blue)),
	}}

	res, err := NewLoader(f, nil).Resolve(context.Background(), "a.png|b.png")
	require.NoError(t, err)

	img := res.Seq.Frames[0].Image
	assert.Equal(t, 100, res.Seq.Width())
	assert.Equal(t, 10+20, res.Seq.Height())
	assert.Equal(t, red, img.NRGBAAt(50, 2))
	assert.Equal(t, blue, img.NRGBAAt(50, 25))
}

func TestResolve_NestedRowInsideStack(t *testing.T) {
	f := &memFetcher{files: map[string][]byte{
		"a.png": fixture.PNG(fixture.Gradient(60, 30)),
		"b.png": fixture.PNG(fixture.Gradient(60, 30)),
		"c.png": fixture.PNG(fixture.Gradient(200, 50)),
	}}

	res, err := NewLoader(f, nil).Resolve(context.Background(), "a.png[]b.png|c.png")
	require.NoError(t, err)

	// Row is 120×30; c shrinks from 200×50 to 120×30.
	assert.Equal(t, 120, res.Seq.Width())
	assert.Equal(t, 60, res.Seq.Height())
}

func TestResolve_AnimatedPartFlattened(t *testing.T) {
	f := &memFetcher{files: map[string][]byte{
		"anim.gif": fixture.AnimatedGIF(40, 40, 10, 20),
		"b.png":    fixture.PNG(fixture.Gradient(40, 10)),
	}}

	res, err := NewLoader(f, nil).Resolve(context.Background(), "anim.gif|b.png")
	require.NoError(t, err)
	assert.False(t, res.Seq.Animated())
	assert.Equal(t, 50, res.Seq.Height())

	single, err := NewLoader(f, nil).Resolve(context.Background(), "anim.gif")
	require.NoError(t, err)
	assert.Len(t, single.Seq.Frames, 2)
	assert.Equal(t, int64(len(f.files["anim.gif"])), single.Size)
}

func TestResolve_FailureAbortsComposite(t *testing.T) {
	f := &memFetcher{files: map[string][]byte{
		"a.png":   fixture.PNG(fixture.Gradient(10, 10)),
		"bad.png": []byte("garbage"),
	}}
	l := NewLoader(f, nil)

	res, err := l.Resolve(context.Background(), "a.png|missing.png")
	assert.Nil(t, res)
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, "missing.png", fe.Location)

	res, err = l.Resolve(context.Background(), "a.png[]bad.png")
	assert.Nil(t, res)
	var ufe *frames.UnsupportedFormatError
	assert.True(t, errors.As(err, &ufe), "got %v", err)

	_, err = l.Resolve(context.Background(), "a.png||a.png")
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestStack_Empty(t *testing.T) {
	_, err := Stack(nil, Vertical)
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestSourceFetcher_HTTP(t *testing.T) {
	body := fixture.PNG(fixture.Gradient(8, 8))
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, _ *http.Request) { w.Write(body) })
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &SourceFetcher{Client: srv.Client(), Timeout: 100 * time.Millisecond}
	ctx := context.Background()

	data, err := f.Fetch(ctx, srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, body, data)

	_, err = f.Fetch(ctx, srv.URL+"/missing.png")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Error(), "404")
	assert.False(t, fe.Timeout())

	_, err = f.Fetch(ctx, srv.URL+"/slow.png")
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.True(t, fe.Timeout())

	small := &SourceFetcher{Client: srv.Client(), MaxBytes: 10}
	_, err = small.Fetch(ctx, srv.URL+"/ok.png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSourceFetcher_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.png")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	f := &SourceFetcher{}
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	data, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = (&SourceFetcher{MaxBytes: 4}).Fetch(context.Background(), path)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "nope"))
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestLoader_WrapsPlainFetchErrors(t *testing.T) {
	l := NewLoader(FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, fmt.Errorf("boom")
	}), nil)

	_, err := l.Resolve(context.Background(), "x")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "x", fe.Location)
}
