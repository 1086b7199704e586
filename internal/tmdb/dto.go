package tmdb

// pagedResponse wraps list endpoints (/movie/*, /trending/*, recommendations, reviews)
type pagedResponse[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// movieResult is one entry of a movie listing
type movieResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    *string `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
	MediaType     string  `json:"media_type,omitempty"` // Set by /trending only
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// movieDetails is the /movie/{id} payload
type movieDetails struct {
	movieResult
	Tagline      string  `json:"tagline"`
	Runtime      int     `json:"runtime"` // Minutes
	Genres       []genre `json:"genres"`
	Status       string  `json:"status"`
	Homepage     string  `json:"homepage"`
	IMDbID       *string `json:"imdb_id"`
	Budget       int64   `json:"budget"`
	Revenue      int64   `json:"revenue"`
	VoteCount    int     `json:"vote_count"`
	BackdropPath *string `json:"backdrop_path"`
}

type castResult struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// creditsResponse is the /movie/{id}/credits payload
type creditsResponse struct {
	ID   int64        `json:"id"`
	Cast []castResult `json:"cast"`
}

type reviewResult struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	AuthorDetails struct {
		Rating *float64 `json:"rating"`
	} `json:"author_details"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// errorResponse is returned alongside non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
