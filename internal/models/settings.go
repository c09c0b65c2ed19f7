package models

// GlobalConfig is the couple-level configuration singleton.
type GlobalConfig struct {
	CoupleName  string `json:"coupleName"`
	Date        string `json:"date"`
	WelcomeMsg  string `json:"welcomeMsg"`
	CoupleImage string `json:"coupleImage"`
}

// ConfigPatch is a partial GlobalConfig. Nil fields are left untouched when
// the patch is merged.
type ConfigPatch struct {
	CoupleName  *string `json:"coupleName,omitempty"`
	Date        *string `json:"date,omitempty"`
	WelcomeMsg  *string `json:"welcomeMsg,omitempty"`
	CoupleImage *string `json:"coupleImage,omitempty"`
}

// Apply returns c with every non-nil field of p copied over.
func (p ConfigPatch) Apply(c GlobalConfig) GlobalConfig {
	if p.CoupleName != nil {
		c.CoupleName = *p.CoupleName
	}
	if p.Date != nil {
		c.Date = *p.Date
	}
	if p.WelcomeMsg != nil {
		c.WelcomeMsg = *p.WelcomeMsg
	}
	if p.CoupleImage != nil {
		c.CoupleImage = *p.CoupleImage
	}
	return c
}

// IsEmpty reports whether the patch sets no field.
func (p ConfigPatch) IsEmpty() bool {
	return p.CoupleName == nil && p.Date == nil && p.WelcomeMsg == nil && p.CoupleImage == nil
}

type ThemeConfig struct {
	Gradient string `json:"gradient"`
	Effect   string `json:"effect"`
}

type PlaybackState struct {
	CurrentSong string `json:"currentSong"`
	IsPlaying   bool   `json:"isPlaying"`
}
