package model

// Genre defines a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie defines movie metadata as returned by the metadata API.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	Genres        []Genre `json:"genres"`
}

// ReleaseYear returns the four digit year of the release date, or an empty
// string when the date is too short.
func (m *Movie) ReleaseYear() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// GenreNames returns the genre names in API order. The result is never nil.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MoviePage defines a page of movie list results.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// CastMember defines a credited actor.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

// CrewMember defines a credited crew member.
type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// RawCredits defines credits exactly as returned by TMDB.
type RawCredits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Credits defines the aggregated credits of a movie: cast and directors
// deduplicated by name.
type Credits struct {
	Cast      []CastMember `json:"cast"`
	Directors []CrewMember `json:"directors"`
}

// JobDirector is the crew job that marks a director.
const JobDirector = "Director"
