package vault

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ztools/pkg/core"
)

// Describe 打印一份清单
func Describe(m *core.Manifest, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Manifest:\t%s\n", m.ID())
	fmt.Fprintf(tw, "Name:\t%s\n", m.Name)
	fmt.Fprintf(tw, "Format:\t%s\n", m.Format)
	fmt.Fprintf(tw, "Size:\t%s\n", FormatSize(m.Size))
	fmt.Fprintf(tw, "Blob:\t%s\n", m.Blob)
	fmt.Fprintf(tw, "Pushed:\t%s\n", m.Created().Format(time.RFC3339))
	return tw.Flush()
}

// FormatSize 把字节数转成人类可读的形式
func FormatSize(s int64) string {
	switch {
	case s < 1024:
		return fmt.Sprintf("%dB", s)
	case s < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	case s < 1024*1024*1024:
		return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
	}
	return fmt.Sprintf("%.2fGB", float64(s)/1024/1024/1024)
}
