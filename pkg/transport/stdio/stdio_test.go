package stdio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-server-time-weather/core"
	"github.com/theapemachine/mcp-server-time-weather/pkg/dispatch"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/clock"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/weather"
)

type dispatcherFunc func(ctx context.Context, raw []byte) []byte

func (fn dispatcherFunc) Handle(ctx context.Context, raw []byte) []byte {
	return fn(ctx, raw)
}

type failingReader struct {
	data []byte
	err  error
}

func (reader *failingReader) Read(p []byte) (int, error) {
	if len(reader.data) == 0 {
		return 0, reader.err
	}
	n := copy(p, reader.data)
	reader.data = reader.data[n:]
	return n, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newEngine() *dispatch.Engine {
	registry, err := core.NewRegistry(clock.New(), weather.New(weather.WithLogger(quietLogger())))
	if err != nil {
		panic(err)
	}
	return dispatch.New(registry, dispatch.WithLogger(quietLogger()))
}

func TestServe(t *testing.T) {
	Convey("Given a stdio server with an echoing dispatcher", t, func() {
		var mu sync.Mutex
		var seen []string

		server := New(dispatcherFunc(func(_ context.Context, raw []byte) []byte {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, string(raw))

			if strings.HasPrefix(string(raw), "quiet") {
				return nil
			}
			return []byte("<" + string(raw) + ">")
		}), quietLogger())

		Convey("Each line should get one response line, in order", func() {
			out := &bytes.Buffer{}
			err := server.Serve(context.Background(), strings.NewReader("one\ntwo\r\nthree"), out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "<one>\n<two>\n<three>\n")
		})

		Convey("Blank lines should be skipped", func() {
			out := &bytes.Buffer{}
			err := server.Serve(context.Background(), strings.NewReader("\n   \none\n\t\n"), out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "<one>\n")
			So(seen, ShouldResemble, []string{"one"})
		})

		Convey("Messages without a response should write nothing", func() {
			out := &bytes.Buffer{}
			err := server.Serve(context.Background(), strings.NewReader("quiet\none\n"), out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "<one>\n")
		})

		Convey("A read failure should end the session with an error", func() {
			broken := errors.New("pipe broke")
			err := server.Serve(context.Background(), &failingReader{data: []byte("one\n"), err: broken}, &bytes.Buffer{})

			So(errors.Is(err, broken), ShouldBeTrue)
		})

		Convey("Cancelling the context should stop a blocked session", func() {
			reader, writer := io.Pipe()
			defer writer.Close()

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)

			go func() {
				done <- server.Serve(ctx, reader, io.Discard)
			}()

			cancel()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return after cancellation")
			}
		})
	})

	Convey("Given a dispatcher that panics", t, func() {
		server := New(dispatcherFunc(func(context.Context, []byte) []byte {
			panic("boom")
		}), quietLogger())

		Convey("The session should answer with an error frame and continue", func() {
			out := &bytes.Buffer{}
			err := server.Serve(context.Background(), strings.NewReader("a\nb\n"), out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, strings.Repeat(`{"jsonrpc":"2.0","id":null,"error":{"code":-32000,"message":"boom"}}`+"\n", 2))
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Given a stdio session over the real engine", t, func() {
		server := New(newEngine(), quietLogger())

		input := strings.Join([]string{
			`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
			`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
			`{"jsonrpc":"2.0","id":4,`,
			`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"bogus_tool","arguments":{}}}`,
		}, "\n") + "\n"

		out := &bytes.Buffer{}
		So(server.Serve(context.Background(), strings.NewReader(input), out), ShouldBeNil)

		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")

		Convey("Every request except the notification should be answered in order", func() {
			So(lines, ShouldHaveLength, 4)
			So(lines[0], ShouldStartWith, `{"jsonrpc":"2.0","id":1,"result":`)
			So(lines[1], ShouldEqual, `{"jsonrpc":"2.0","id":2,"result":{}}`)
			So(lines[2], ShouldStartWith, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,`)
			So(lines[3], ShouldStartWith, `{"jsonrpc":"2.0","id":5,"error":{"code":-32000,`)
		})
	})
}
