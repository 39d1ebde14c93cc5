// SPDX-License-Identifier: MPL-2.0

package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)

	p.Banner("Docker Build")
	p.KeyValues("Docker Build Arguments", []KeyValue{{"nocache", false}, {"tag", "img:1"}})
	p.BuildLine("Step 1/2 : FROM ubuntu")
	p.List("Active Extensions", []string{"home", "user"})
	p.Warning("careful")
	p.Error("boom")
	p.Println("plain")

	out := buf.String()
	for _, want := range []string{
		strings.Repeat("=", bannerWidth),
		"Docker Build",
		"nocache",
		"false",
		"img:1",
		"building > ",
		"Step 1/2 : FROM ubuntu\n",
		"• home\n",
		"• user\n",
		"careful",
		"boom",
		"plain\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNew_NilWriter(t *testing.T) {
	t.Parallel()

	p := New(nil)
	p.Banner("ignored")
	if p.Writer() == nil {
		t.Error("Writer() = nil")
	}
}
