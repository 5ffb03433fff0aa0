package models

type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	Genre         string `json:"genre,omitempty"`
	YearOfPublish string `json:"year_of_publish,omitempty"`
	Summary       string `json:"summary,omitempty"`
}
