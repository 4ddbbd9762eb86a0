package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func capture() (*slogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: &levelVar})
	return &slogLogger{l: slog.New(h)}, &buf
}

func TestLogging(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		ctx := context.Background()
		log, buf := capture()
		SetLevel(slog.LevelInfo)

		Convey("Then records carry the message and fields", func() {
			log.Info(ctx, "plan solved", String("variant", "offense"), Int("series", 8))
			out := buf.String()
			So(out, ShouldContainSubstring, "plan solved")
			So(out, ShouldContainSubstring, "variant=offense")
			So(out, ShouldContainSubstring, "series=8")
		})

		Convey("Then debug records are dropped at info level", func() {
			log.Debug(ctx, "noise")
			So(buf.String(), ShouldBeEmpty)

			SetLevel(slog.LevelDebug)
			log.Debug(ctx, "noise")
			So(buf.String(), ShouldContainSubstring, "noise")
		})

		Convey("Then named loggers group their fields", func() {
			log.Named("solver").Warn(ctx, "fallback", Int("budget", 1))
			So(buf.String(), ShouldContainSubstring, "solver.budget=1")
		})
	})
}

func TestLevelStrings(t *testing.T) {
	Convey("Given level names", t, func() {
		Convey("Then known names apply, case-insensitively", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelDebug)
			So(SetLevelString("warning"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelWarn)
			So(SetLevelString(""), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelInfo)
		})

		Convey("Then unknown names are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestGlobal(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get and Named hand out loggers", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("session"), ShouldNotBeNil)
		})
	})
}
