// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package translate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ajroetker/pancakevc/internal/workerpool"
	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

const driverSrc = `
(shared A rw 32 (addrs 0x10))
(shared B rw 32 (addrs 0x10))
(func good (a) (shared-store 32 a 1))
(func bad () (return z))
(func other () (dec v 0 (shared-load 32 v 0x10)))
`

type recordingWarner struct {
	lines []string
}

func (w *recordingWarner) Warnf(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestDriver(t *testing.T) {
	prog, err := pancake.Parse("driver.pnk", driverSrc)
	require.NoError(t, err)

	pool := workerpool.New(2)
	defer pool.Close()

	for _, p := range []*workerpool.Pool{nil, pool} {
		t.Run(fmt.Sprintf("pool=%v", p != nil), func(t *testing.T) {
			d := &Driver{Pool: p}
			_, err := d.Translate(prog)
			var fe *FunctionError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "bad", fe.Function)
			var undeclared *UndeclaredVariableError
			assert.True(t, errors.As(err, &undeclared))

			w := &recordingWarner{}
			d = &Driver{Pool: p, KeepGoing: true, Warner: w}
			out, err := d.Translate(prog)
			require.NoError(t, err)
			names := make([]string, len(out.Methods))
			for i, m := range out.Methods {
				names[i] = m.Name
			}
			if diff := cmp.Diff([]string{"f_good", "f_other"}, names); diff != "" {
				t.Errorf("methods mismatch (-want +got):\n%s", diff)
			}
			require.Len(t, out.Errors, 1)
			assert.Equal(t, "bad", out.Errors[0].Function)
			if diff := cmp.Diff([]string{"store_A", "store_B", "load_A"}, out.Accessors); diff != "" {
				t.Errorf("accessors mismatch (-want +got):\n%s", diff)
			}
			assert.Len(t, w.lines, 8, "4 bytes claimed twice in each direction")
		})
	}
}

func TestDriverIgnoreWarnings(t *testing.T) {
	prog, err := pancake.Parse("driver.pnk", driverSrc)
	require.NoError(t, err)
	w := &recordingWarner{}
	d := &Driver{Options: NewOptions(WithIgnoreWarnings(true)), Warner: w, KeepGoing: true}
	_, err = d.Translate(prog)
	require.NoError(t, err)
	assert.Empty(t, w.lines)
}

func TestDriverRegistryError(t *testing.T) {
	prog, err := pancake.Parse("bad.pnk", `(shared X r 8 8 0 1)`)
	require.NoError(t, err)
	_, err = (&Driver{}).Translate(prog)
	assert.Error(t, err)
}

func TestPrelude(t *testing.T) {
	prog, err := pancake.Parse("prelude.pnk", `
(shared UART0 w 8 0x1000 0x1004 1)
(shared STATUS r 32 (addrs 0x2000))`)
	require.NoError(t, err)
	out, err := (&Driver{}).Translate(prog)
	require.NoError(t, err)

	prelude := Prelude(out.Registry, []string{"load_STATUS", "store_UART0", "shared_store64"})
	for _, want := range []string{
		"domain IArray {",
		"field heap_elem: Int\n",
		"function bw_lshr(a: Int, b: Int): Int\n",
		"function bounded64(x: Int): Bool { 0 <= x && x < 18446744073709551616 }\n",
		"method store_UART0(heap: IArray, addr: Int, value: Int)\n" +
			"\trequires ((4096 <= addr) && (addr < 4100)) && ((addr % 1) == 0)\n",
		"method load_STATUS(heap: IArray, addr: Int) returns (retval: Int)\n" +
			"\trequires addr == 8192\n" +
			"\tensures bounded32(retval)\n",
		"method shared_store64(heap: IArray, addr: Int, value: Int)\n",
	} {
		assert.Contains(t, prelude, want)
	}
	assert.NotContains(t, prelude, "method load_UART0")
	assert.Less(t, strings.Index(prelude, "method store_UART0"), strings.Index(prelude, "method load_STATUS"),
		"region accessors follow registration order")
}

// TestGolden translates every testdata/*.txtar archive's input.pnk and
// compares the program with its output.vpr.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			ar := txtar.Parse(data)
			sections := make(map[string]string)
			for _, f := range ar.Files {
				sections[f.Name] = string(f.Data)
			}
			prog, err := pancake.Parse(file, sections["input.pnk"])
			require.NoError(t, err)
			out, err := (&Driver{}).Translate(prog)
			require.NoError(t, err)
			got := viper.NewPrinter().Program(out.Program())
			if diff := cmp.Diff(sections["output.vpr"], got); diff != "" {
				t.Errorf("%s: output mismatch (-want +got):\n%s", file, diff)
			}
		})
	}
}
