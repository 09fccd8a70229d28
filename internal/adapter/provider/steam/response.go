package steam

// appDetailsEnvelope is the per-app wrapper of /api/appdetails, keyed by app id.
type appDetailsEnvelope struct {
	Success bool        `json:"success"`
	Data    *appDetails `json:"data"`
}

type appDetails struct {
	Type             string         `json:"type"`
	Name             string         `json:"name"`
	SteamAppID       int64          `json:"steam_appid"`
	IsFree           bool           `json:"is_free"`
	ShortDescription string         `json:"short_description"`
	HeaderImage      string         `json:"header_image"`
	Developers       []string       `json:"developers"`
	Publishers       []string       `json:"publishers"`
	PriceOverview    *priceOverview `json:"price_overview"`
	Genres           []genre        `json:"genres"`
	ReleaseDate      releaseDate    `json:"release_date"`
}

type priceOverview struct {
	Currency       string `json:"currency"`
	FinalFormatted string `json:"final_formatted"`
}

type genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type releaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}
