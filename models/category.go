package models

// VendorCategory is the kind of service a vendor offers
type VendorCategory string

const (
	CategoryPhotography    VendorCategory = "photography"
	CategoryVideography    VendorCategory = "videography"
	CategoryCatering       VendorCategory = "catering"
	CategoryDecoration     VendorCategory = "decoration"
	CategoryVenue          VendorCategory = "venue"
	CategoryMusic          VendorCategory = "music"
	CategoryMakeup         VendorCategory = "makeup"
	CategoryPlanning       VendorCategory = "planning"
	CategoryEntertainment  VendorCategory = "entertainment"
	CategoryTransportation VendorCategory = "transportation"
	CategoryInvitations    VendorCategory = "invitations"
	CategoryLighting       VendorCategory = "lighting"
)

var vendorCategories = map[VendorCategory]bool{
	CategoryPhotography:    true,
	CategoryVideography:    true,
	CategoryCatering:       true,
	CategoryDecoration:     true,
	CategoryVenue:          true,
	CategoryMusic:          true,
	CategoryMakeup:         true,
	CategoryPlanning:       true,
	CategoryEntertainment:  true,
	CategoryTransportation: true,
	CategoryInvitations:    true,
	CategoryLighting:       true,
}

func (c VendorCategory) IsValid() bool {
	return vendorCategories[c]
}

// EventType is the kind of event a service can be booked for
type EventType string

const (
	EventWedding     EventType = "wedding"
	EventEngagement  EventType = "engagement"
	EventBirthday    EventType = "birthday"
	EventAnniversary EventType = "anniversary"
	EventCorporate   EventType = "corporate"
	EventConference  EventType = "conference"
	EventBabyShower  EventType = "babyShower"
	EventFestival    EventType = "festival"
	EventReligious   EventType = "religious"
	EventOther       EventType = "other"
)

var eventTypes = map[EventType]bool{
	EventWedding:     true,
	EventEngagement:  true,
	EventBirthday:    true,
	EventAnniversary: true,
	EventCorporate:   true,
	EventConference:  true,
	EventBabyShower:  true,
	EventFestival:    true,
	EventReligious:   true,
	EventOther:       true,
}

func (e EventType) IsValid() bool {
	return eventTypes[e]
}
