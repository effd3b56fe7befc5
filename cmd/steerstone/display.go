package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"
	"golang.org/x/text/width"
)

// ── Startup display helpers ────────────────────────────────────────

var (
	styleFrame  = color.Style{color.FgCyan, color.OpBold}
	styleTitle  = color.Style{color.OpBold}
	styleSubtle = color.Style{color.FgGray}
	styleHead   = color.Style{color.FgYellow}
	styleOK     = color.Style{color.FgGreen}
)

func init() {
	// piped output and log files get plain text
	color.Enable = term.IsTerminal(int(os.Stdout.Fd()))
}

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println(styleFrame.Sprint("  ┌───────────────────────────────────────────┐"))
	fmt.Println(styleFrame.Sprint("  │") + "            SteerStone  v0.1.0             " + styleFrame.Sprint("│"))
	fmt.Println(styleFrame.Sprint("  │") + "        房間伺服器 · Go 遊戲伺服器         " + styleFrame.Sprint("│"))
	fmt.Println(styleFrame.Sprint("  └───────────────────────────────────────────┘"))
	fmt.Println()
	fmt.Printf("  %s %s %s\n\n", styleTitle.Sprint("伺服器:"), serverName, styleSubtle.Sprintf("(編號: %d)", serverID))
}

// displayWidth counts East Asian wide runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Println(styleHead.Sprintf("  ── %s %s", title, strings.Repeat("─", lineLen)))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, styleSubtle.Sprint(strings.Repeat("·", dotsLen)), styleOK.Sprint(numStr))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", styleOK.Sprint("✓"), msg)
}

func printReady(msg string) {
	fmt.Printf("  %s %s\n", styleOK.Sprint("▶"), msg)
}
