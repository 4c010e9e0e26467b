package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/famomatic/ytmeta/internal/formats"
	"github.com/famomatic/ytmeta/internal/types"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <url|id>",
		Short: "Fetch title, channel, duration, and stream summary for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.buildClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			info, err := c.FetchVideoInfo(ctx, args[0])
			if err != nil {
				return err
			}
			if opts.verbose {
				printTrace(cmd.ErrOrStderr(), info.Trace)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderInfo(info))
			return nil
		},
	}
}

func newFormatsCmd(opts *rootOptions) *cobra.Command {
	var best bool

	cmd := &cobra.Command{
		Use:   "formats <url|id>",
		Short: "List resolved stream formats for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.buildClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			info, err := c.FetchVideoInfo(ctx, args[0])
			if err != nil {
				return err
			}
			if opts.verbose {
				printTrace(cmd.ErrOrStderr(), info.Trace)
			}
			if best {
				fmt.Fprint(cmd.OutOrStdout(), renderBest(info.Formats))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderFormatsTable(info.Formats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&best, "best", false, "Print only the best audio and best video picks")

	return cmd
}

func printTrace(w io.Writer, trace []types.Attempt) {
	for _, a := range trace {
		if a.Success {
			fmt.Fprintf(w, "%s %s\n", okStyle.Render("ok"), a.Client)
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", errStyle.Render("fail"), a.Client, a.Reason)
	}
}

func renderInfo(info *types.VideoInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(info.Title) + "\n")

	channel := info.Author
	if info.ChannelID != "" {
		channel += " (" + info.ChannelID + ")"
	}
	live := ""
	if info.IsLive {
		live = "yes"
	}
	rows := []struct{ label, value string }{
		{"Video ID", info.ID},
		{"Channel", channel},
		{"Duration", formatDuration(info.DurationSeconds)},
		{"Views", formatCount(info.ViewCount)},
		{"Published", info.PublishDate},
		{"Category", info.Category},
		{"Live", live},
		{"Formats", formatsSummary(info.Formats)},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		b.WriteString(labelStyle.Render(row.label) + " " + row.value + "\n")
	}
	if info.ShortDescription != "" {
		b.WriteString("\n" + dimStyle.Render(truncate(info.ShortDescription, 280)) + "\n")
	}
	return b.String()
}

func formatsSummary(fs []types.StreamFormat) string {
	ciphered := 0
	for _, f := range fs {
		if f.WasCiphered {
			ciphered++
		}
	}
	if ciphered == 0 {
		return strconv.Itoa(len(fs))
	}
	return fmt.Sprintf("%d (%d deciphered)", len(fs), ciphered)
}

const formatRowLayout = "%5s  %-5s  %-9s  %-17s  %-12s  %10s  %9s  %s"

func renderFormatsTable(fs []types.StreamFormat) string {
	if len(fs) == 0 {
		return dimStyle.Render("no formats") + "\n"
	}
	var b strings.Builder
	header := fmt.Sprintf(formatRowLayout, "ITAG", "TYPE", "CONTAINER", "CODECS", "QUALITY", "BITRATE", "SIZE", "")
	b.WriteString(headerStyle.Render(strings.TrimRight(header, " ")) + "\n")
	for _, f := range fs {
		b.WriteString(strings.TrimRight(formatRow(f), " ") + "\n")
	}
	return b.String()
}

func renderBest(fs []types.StreamFormat) string {
	var b strings.Builder
	if audio, ok := formats.BestAudio(fs); ok {
		b.WriteString(labelStyle.Render("Best audio") + " " + strings.TrimRight(formatRow(audio), " ") + "\n")
	}
	if video, ok := formats.BestVideo(fs); ok {
		b.WriteString(labelStyle.Render("Best video") + " " + strings.TrimRight(formatRow(video), " ") + "\n")
	}
	if b.Len() == 0 {
		return dimStyle.Render("no formats") + "\n"
	}
	return b.String()
}

func formatRow(f types.StreamFormat) string {
	kind := "audio"
	switch {
	case f.HasVideo && f.HasAudio:
		kind = "av"
	case f.HasVideo:
		kind = "video"
	}

	var codecs []string
	if f.VideoCodec != types.VideoCodecNone {
		codecs = append(codecs, string(f.VideoCodec))
	}
	if f.AudioCodec != types.AudioCodecNone {
		codecs = append(codecs, string(f.AudioCodec))
	}

	quality := f.QualityLabel
	if quality == "" {
		quality = strings.TrimPrefix(f.AudioQuality, "AUDIO_QUALITY_")
	}
	if quality == "" {
		quality = f.Quality
	}

	bitrate := f.AverageBitrate
	if bitrate == 0 {
		bitrate = f.Bitrate
	}
	bitrateCol := "-"
	if bitrate > 0 {
		bitrateCol = fmt.Sprintf("%d kbps", bitrate/1000)
	}

	note := ""
	if f.WasCiphered {
		note = "deciphered"
	}

	return fmt.Sprintf(formatRowLayout,
		strconv.Itoa(f.Itag),
		kind,
		orDash(string(f.Container)),
		orDash(strings.Join(codecs, "+")),
		orDash(strings.ToLower(quality)),
		bitrateCol,
		humanSize(f.ContentLength),
		note,
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-3]) + "..."
}

func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatCount(n int64) string {
	digits := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	out := strings.Join(groups, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func humanSize(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	}
}
