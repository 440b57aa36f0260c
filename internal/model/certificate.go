package model

type Certificate struct {
	ID       int64  `json:"id" yaml:"id" db:"id"`
	Title    string `json:"title" yaml:"title" db:"title"`
	Issuer   string `json:"issuer" yaml:"issuer" db:"issuer"`
	IssuedOn string `json:"issued_on" yaml:"issued_on" db:"issued_on"`
	URL      string `json:"url" yaml:"url" db:"url"`
}
