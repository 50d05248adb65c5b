package provider

// Profile is the provider-neutral user record. Providers populate whatever
// their API exposes and leave the rest at zero values.
type Profile struct {
	// Identifier is the provider's unique id for the user.
	Identifier string

	DisplayName string
	FirstName   string
	LastName    string
	Description string

	// ProfileURL links to the user's page on the provider; WebsiteURL is
	// the user's own site.
	ProfileURL string
	WebsiteURL string
	PhotoURL   string

	Email         string
	EmailVerified bool
	Phone         string

	Gender   string
	Language string

	// Birth date components; zero means the provider did not disclose it.
	BirthDay   int
	BirthMonth int
	BirthYear  int

	Address string
	City    string
	Region  string
	Country string
	Zip     string
}

// Contact is one entry from a provider's contact listing.
type Contact struct {
	Identifier  string
	DisplayName string
	Description string
	ProfileURL  string
	WebsiteURL  string
	PhotoURL    string
	Email       string
}

// Activity is one entry from a provider's activity stream.
type Activity struct {
	ID   string
	Date string
	Text string
	User ActivityUser
}

// ActivityUser identifies the author of an Activity.
type ActivityUser struct {
	Identifier  string
	DisplayName string
	ProfileURL  string
	PhotoURL    string
}
