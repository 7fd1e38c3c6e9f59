package service

import "regexp"

// Size variants are derived URLs, not separate stored objects. The
// transform token sits in its own path segment right after the version
// segment, where the asset host's URL rewriter picks it up.
const (
	cropMedium = "w_500,h_500,c_fit"
	cropSmall  = "w_200,h_200,c_fit"
)

var versionSegment = regexp.MustCompile(`/v\d+/`)

func variantPath(originalURL, crop string) string {
	loc := versionSegment.FindStringIndex(originalURL)
	if loc == nil {
		return originalURL
	}
	return originalURL[:loc[1]] + crop + "/" + originalURL[loc[1]:]
}

func MediumVariant(originalURL string) string {
	return variantPath(originalURL, cropMedium)
}

func SmallVariant(originalURL string) string {
	return variantPath(originalURL, cropSmall)
}
