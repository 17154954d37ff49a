package main

// usernames are the members the Pyronauts role is taken from.
var usernames = []string{
	"bjorcaa", "bodia9475", "chak3372_70383", "noob2711", "altafbhay",
	"pelasan", "koneko5241", "akton0208", "bimasee33", "alhisyam",
	"budi846", "baconcheese21", ".dodori", "edward_243", "kesoonho",
	"batiiiix", "grishaiv", "hiroshi_50712", "phucvo652", "ariamandra",
}
