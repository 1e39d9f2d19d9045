/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package snapshot

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"dirpx.dev/perform/apis"
)

// Dump writes one "typeName<TAB>selector<LF>" line per distinct
// (type name, selector) pair of recs, sorted by type name then selector.
func Dump(w io.Writer, recs []apis.Record) error {
	type pair struct{ name, selector string }
	pairs := make([]pair, 0, len(recs))
	for _, r := range recs {
		pairs = append(pairs, pair{r.Key.Name, r.Selector})
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.selector, b.selector)
	})
	pairs = slices.Compact(pairs)

	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		bw.WriteString(p.name)
		bw.WriteByte('\t')
		bw.WriteString(p.selector)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
