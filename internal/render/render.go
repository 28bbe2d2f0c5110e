// Package render draws boards as text for the terminal client.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
	"unicode"

	"battleship-salvo/internal/game"
)

// Symbol is what a player sees on c. With hide set (the enemy board) ships
// stay invisible until the cell is fired upon. On an unhidden board a hit
// fragment is drawn lower case.
func Symbol(c *game.Cell, hide bool) rune {
	if hide && !c.Fired {
		return ' '
	}
	sym := c.Symbol()
	if !hide && c.Hit() {
		return unicode.ToLower(sym)
	}
	return sym
}

// Rows returns one string per board row.
func Rows(b *game.Board, hide bool) []string {
	out := make([]string, b.Rows)
	for y := 0; y < b.Rows; y++ {
		line := make([]rune, b.Cols)
		for x := 0; x < b.Cols; x++ {
			c, _ := b.Cell(x, y)
			line[x] = Symbol(c, hide)
		}
		out[y] = string(line)
	}
	return out
}

// Grid draws b with column numbers across the top and row numbers down the
// side. Blank cells are drawn as "~".
func Grid(b *game.Board, hide bool) string {
	var buffer bytes.Buffer
	tw := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	fmt.Fprint(tw, "\t")
	for x := 0; x < b.Cols; x++ {
		fmt.Fprint(tw, strconv.Itoa(x)+"\t")
	}
	fmt.Fprint(tw, "\n")

	for y, line := range Rows(b, hide) {
		fmt.Fprint(tw, strconv.Itoa(y)+"\t")
		for _, r := range line {
			if r == ' ' {
				r = '~'
			}
			fmt.Fprint(tw, string(r)+"\t")
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
	return buffer.String()
}
