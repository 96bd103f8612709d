package boardhandler

type NoteForm struct {
	Room    string `form:"room" binding:"required" example:"Aegis"`
	Content string `form:"content" example:"come pair on parsers!"`
} // @name NoteForm

type CheckIntoHubForm struct {
	Note string `form:"note" example:"here till 5"`
} // @name CheckIntoHubForm

type CustomizationForm struct {
	Code string `form:"code"`
} // @name CustomizationForm

type PauseQuery struct {
	UserID string `form:"rcUserId" binding:"required"`
} // @name PauseQuery

type PageQuery struct {
	// Basic strips customizations from the page ("?basic").
	Basic *string `form:"basic"`
	// Sort selects room ordering; "none" keeps registry order.
	Sort string `form:"sort"`
} // @name PageQuery

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
