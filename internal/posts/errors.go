package posts

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotFound Error = "publish record(s) not found"
)
