package bot

import (
	"localizador_bot/pkg"
)

// optionsPerRow is the keyboard grid width used for every option list.
const optionsPerRow = 2

// OptionsKeyboard lays an ordered option list into a one-time,
// auto-resizing reply keyboard, two options per row.
func OptionsKeyboard(options []string) *pkg.Keyboard {
	return &pkg.Keyboard{
		Rows:    ChunkOptions(options, optionsPerRow),
		OneTime: true,
		Resize:  true,
	}
}

// ChunkOptions splits an ordered option list into rows of perRow
// entries, preserving order. Pure layout, no state.
func ChunkOptions(options []string, perRow int) [][]string {
	if perRow < 1 {
		perRow = 1
	}
	var rows [][]string
	for start := 0; start < len(options); start += perRow {
		end := start + perRow
		if end > len(options) {
			end = len(options)
		}
		rows = append(rows, options[start:end])
	}
	return rows
}
