package resolve

import (
	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/types"
)

// SearchResults flattens the search renderer tree into exported results,
// keeping page order. Entries that are not plain videos (ads, shelves,
// continuations) are already filtered by the renderer walk.
func SearchResults(resp *innertube.SearchResponse) []types.SearchResult {
	renderers := resp.VideoRenderers()
	out := make([]types.SearchResult, 0, len(renderers))
	for _, vr := range renderers {
		res := types.SearchResult{
			VideoID:       vr.VideoID,
			Title:         vr.Title.Text(),
			Author:        vr.OwnerText.Text(),
			LengthText:    vr.LengthText.Text(),
			ViewCountText: vr.ViewCountText.Text(),
			PublishedText: vr.PublishedTimeText.Text(),
		}
		for _, t := range vr.Thumbnail.Thumbnails {
			res.Thumbnails = append(res.Thumbnails, types.Thumbnail{
				URL:    t.URL,
				Width:  t.Width,
				Height: t.Height,
			})
		}
		out = append(out, res)
	}
	return out
}
