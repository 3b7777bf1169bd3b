package server

import (
	"time"

	"dinnerdice/internal/roller"
)

type pageData struct {
	Cuisines []string
	Outcome  *roller.Outcome
}

type rollResponse struct {
	Status    string     `json:"status"`
	Messages  []string   `json:"messages"`
	Cuisine   string     `json:"cuisine,omitempty"`
	EventDate string     `json:"event_date,omitempty"`
	Place     *placeView `json:"place,omitempty"`
	EventLink string     `json:"event_link,omitempty"`
	DryRun    bool       `json:"dry_run,omitempty"`
}

type placeView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	PriceLevel  string  `json:"price_level,omitempty"`
	Address     string  `json:"address,omitempty"`
	MapsURI     string  `json:"maps_uri,omitempty"`
}

func toResponse(out roller.Outcome) rollResponse {
	resp := rollResponse{Status: string(out.Status), Messages: out.Messages}
	if out.Result == nil {
		return resp
	}
	r := out.Result
	resp.Cuisine = r.Cuisine
	resp.EventDate = r.EventDate.Format(time.DateOnly)
	resp.DryRun = r.DryRun
	if r.Event != nil {
		resp.EventLink = r.Event.Link
	}
	resp.Place = &placeView{
		ID:          r.Place.ID,
		Name:        r.Place.Name(),
		Rating:      r.Place.RatingValue(),
		ReviewCount: r.Place.ReviewCount(),
		PriceLevel:  r.Place.PriceLevel,
		Address:     r.Place.FormattedAddress,
		MapsURI:     r.Place.GoogleMapsURI,
	}
	return resp
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weekly New Restaurant Night</title>
<style>
body { font-family: sans-serif; max-width: 36rem; margin: 3rem auto; }
.success { color: #1a7f37; } .warning { color: #9a6700; } .error { color: #cf222e; }
</style>
</head>
<body>
<h1>Weekly New Restaurant Night</h1>
<form method="post" action="/roll">
<select name="cuisine">
<option value="">Any cuisine</option>
{{range .Cuisines}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
<button type="submit">Roll the Dice</button>
</form>
{{with .Outcome}}
{{with .Result}}
<h2>{{.Place.Name}}</h2>
<p>{{.Cuisine}} | {{.Place.RatingText "N/A"}} ⭐ | {{.EventDate.Format "Monday, Jan 2"}}</p>
{{if .Place.GoogleMapsURI}}<p><a href="{{.Place.GoogleMapsURI}}">View on Google Maps</a></p>{{end}}
{{end}}
{{$status := .Status}}
{{range .Messages}}<p class="{{$status}}">{{.}}</p>
{{end}}
{{end}}
</body>
</html>
`
