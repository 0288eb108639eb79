package corpus

import (
	"bufio"
	"bytes"
	"io/fs"
	"path"
	"strings"
)

const titleMarker = "# "

// TitleOf returns the display title of the document file name (with
// extension): the text after the first line that starts with "# ", or the
// file stem when there is none or the file cannot be read.
func (c *Corpus) TitleOf(name string) string {
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		c.log.Debug("title fallback", "path", name, "error", err)
		return stem(name)
	}
	return TitleFromSource(data, stem(name))
}

// TitleFromSource scans src line by line for a level-one ATX heading and
// returns fallback when none is present.
func TitleFromSource(src []byte, fallback string) string {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.HasPrefix(line, titleMarker) {
			return strings.TrimSpace(line[len(titleMarker):])
		}
	}
	return fallback
}

func stem(name string) string {
	return strings.TrimSuffix(path.Base(name), Ext)
}
