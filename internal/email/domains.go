package email

// disposableDomains are throwaway mail services.
var disposableDomains = []string{
	"10minutemail.com", "10minutemail.net", "20minutemail.com", "2prong.com",
	"30minutemail.com", "33mail.com", "guerrillamail.com", "guerrillamail.net",
	"guerrillamail.org", "guerrillamail.biz", "guerrillamailblock.com",
	"sharklasers.com", "spam4.me", "grr.la", "guerrillamail.de",
	"mailinator.com", "mailinator.net", "mailinator2.com", "tempmail.com",
	"temp-mail.org", "temp-mail.io", "throwaway.email", "trashmail.com",
	"trashmail.net", "tempr.email", "fakeinbox.com", "getnada.com",
	"getairmail.com", "yopmail.com", "yopmail.fr", "cool.fr.nf",
	"jetable.fr.nf", "nospam.ze.tc", "nomail.xl.cx", "mega.zik.dj",
	"speed.1s.fr", "courriel.fr.nf", "moncourrier.fr.nf", "monemail.fr.nf",
	"monmail.fr.nf", "hidemail.de", "emailtemporario.com.br", "maildrop.cc",
	"mailnesia.com", "mailcatch.com", "mailtothis.com", "mytemp.email",
	"mytrashmail.com", "spamgourmet.com", "mintemail.com", "dispostable.com",
	"disposeamail.com", "discard.email", "discardmail.com", "discardmail.de",
	"spambog.com", "spambog.de", "spambog.ru", "spam.la", "spambox.us",
	"spamfree24.org", "spamfree24.de", "spamfree24.eu", "spamfree24.info",
	"spamfree24.net", "spamoff.de", "fakemailgenerator.com", "anonbox.net",
	"anonymbox.com", "antichef.com", "binkmail.com", "bobmail.info",
	"bugmenot.com", "deadaddress.com", "despam.it", "despammed.com",
	"dontreg.com", "emailias.com", "emailwarden.com", "filzmail.com",
	"haltospam.com", "incognitomail.org", "klzlk.com", "mailexpire.com",
	"mailforspam.com", "mailfreeonline.com", "mailimate.com", "mailmetrash.com",
	"mailmoat.com", "mailnull.com", "mailsac.com", "mailshell.com",
	"mailzilla.com", "mt2009.com", "nobulk.com", "noclickemail.com",
	"nogmailspam.info", "notsharingmy.info", "nowmymail.com", "pookmail.com",
	"proxymail.eu", "putthisinyourspamdatabase.com", "rcpt.at", "recode.me",
	"recursor.net", "rtrtr.com", "safetymail.info", "selfdestructingmail.com",
	"sendspamhere.com", "shiftmail.com", "skeefmail.com", "slopsbox.com",
	"smellfear.com", "sneakemail.com", "sogetthis.com", "soodonims.com",
	"spam.su", "spamavert.com", "spambox.info", "spamcero.com", "spamcon.org",
	"spamcorptastic.com", "spamday.com", "spamex.com", "spamfree.eu",
	"spamherelots.com", "spamhereplease.com", "spamhole.com", "spamify.com",
	"spaminator.de", "spamkill.info", "spaml.com", "spaml.de", "spammotel.com",
	"spamobox.com", "spamspot.com", "spamthis.co.uk", "spamthisplease.com",
	"supergreatmail.com", "supermailer.jp", "tempemail.co.za", "tempemail.com",
	"tempemail.net", "tempinbox.co.uk", "tempinbox.com", "tempmail.eu",
	"tempmaildemo.com", "tempmailer.com", "tempmailer.de", "tempomail.fr",
	"temporarily.de", "temporarioemail.com.br", "temporaryemail.net",
	"temporaryforwarding.com", "temporaryinbox.com", "temporarymailaddress.com",
	"thanksnospam.info", "thankyou2010.com", "thisisnotmyrealemail.com",
	"throwawayemailaddress.com", "tilien.com", "tmailinator.com",
	"tradermail.info", "trash-amil.com", "trash-mail.at", "trash-mail.com",
	"trash-mail.de", "trash2009.com", "trashemail.de", "trashmail.at",
	"trashmail.me", "trashmail.ws", "trashymail.com", "trialmail.de",
	"twinmail.de", "uggsrock.com", "whatpayne.com", "whyspam.me",
	"willselfdestruct.com", "winemaven.info", "wronghead.com", "wuzupmail.net",
	"xagloo.com", "xemaps.com", "xents.com", "xmaily.com", "yuurok.com",
	"zehnminuten.de", "zippymail.info",
}

// freeDomains are large free webmail providers.
var freeDomains = []string{
	"gmail.com", "googlemail.com", "yahoo.com", "yahoo.co.uk", "yahoo.fr",
	"yahoo.de", "yahoo.es", "yahoo.it", "hotmail.com", "hotmail.co.uk",
	"hotmail.fr", "hotmail.de", "hotmail.es", "hotmail.it", "outlook.com",
	"live.com", "msn.com", "aol.com", "mail.com", "inbox.com", "icloud.com",
	"me.com", "mac.com", "protonmail.com", "protonmail.ch", "yandex.com",
	"yandex.ru", "mail.ru", "gmx.com", "gmx.de", "gmx.net", "web.de",
	"zoho.com", "tutanota.com", "fastmail.com",
}
