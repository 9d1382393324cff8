package domain

// Caller-facing messages. The mobile client shows them verbatim.
const (
	MsgUserNotFound       = "Korisnik nije pronađen"
	MsgFacilityNotFound   = "Postrojenje nije pronađeno"
	MsgEquipmentNotFound  = "Uređaj nije pronađen"
	MsgParameterNotFound  = "Parametar nije pronađen"
	MsgBadCredentials     = "Korisničko ime ili lozinka nisu ispravni"
	MsgInspectionSynced   = "Pregled s ovim lokalnim ID-om je već sinkroniziran"
	MsgItemSynced         = "Stavka s ovim lokalnim ID-om je već sinkronizirana"
	MsgDuplicateCheck     = "Stavka za ovaj uređaj i parametar već postoji u pregledu"
	MsgSyncOK             = "Pregled je uspješno sinkroniziran"
	MsgInspectionRequired = "Pregled je obavezan"
	MsgItemsRequired      = "Stavke su obavezne"
	MsgInspectionLocalID  = "pregled.lokalni_id je obavezan"
	MsgItemLocalID        = "stavka.lokalni_id je obavezan"
	MsgFieldRequired      = "Parametar id_polje je obavezan"
	MsgUsernameRequired   = "Korisničko ime je obavezno"
	MsgPasswordRequired   = "Lozinka je obavezna"
	MsgStartRequired      = "pregled.pocetak je obavezan"
	MsgInvalidLocalID     = "lokalni_id mora biti ispravan UUID"
	MsgSingleValue        = "Dozvoljena je samo jedna vrijednost po stavci"
	MsgNumberRequired     = "Vrijednost brojčana je obavezna za NUMERIC parametar"
	MsgBelowMinimum       = "Vrijednost je manja od minimalne dozvoljene"
	MsgAboveMaximum       = "Vrijednost je veća od maksimalne dozvoljene"
	MsgBoolRequired       = "Vrijednost bool je obavezna za BOOLEAN parametar"
	MsgTextRequired       = "Vrijednost tekst je obavezna za TEXT parametar"
	MsgInvalidToken       = "Neispravan ili istekao token"
	MsgMissingToken       = "Autentifikacija je obavezna"
	MsgUnexpected         = "Neočekivana pogreška: "
)
