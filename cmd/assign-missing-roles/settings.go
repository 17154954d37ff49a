package main

// usernames are the members found missing the test role by check-roles.
var usernames = []string{
	"burhan_gm", "flintfogo", "fogofox_1", "0xgloryoum", "wizzingg", "jakeones11",
	"kengv6740", "ember_pyron", "thee_holy_son", "shr1nko", "minhduc2510.it",
	"poqi.sol", "phong2461", "wwkol", "gabup77", "arfprks98", "orang2ancrypto",
	"blackkucing_", "xhena6", "zhzh_22", "kharather", "oxygen_web3", "kingofwar0295",
	"billgusssss", "bittime", "imkuvalda", "harmansyah0215_95897", "bhavin07",
	"demon_bi99", "nuel0751", "dretan12", "nunis0", "ngocthanhwin.161", "cryptospot27",
	"burak7058", "0xsmile_", "sidus0759", "auroraevm", "0xmybaba", "marinaafesa",
	"yash_2214", "diki21", "nongwaan", "baconcheese21", "badjon1", "bodia9475",
	".dancrypto", "dovvvv", "eno8322", "flaha_dter", "joshey9854", "notuzz.sol",
	"oldtora", "0regan0flakes", "rickpeak", "rogalevlion", "waytoff", "jong3928",
	"major5599", "cmfeint", "cm_gon", "itsjowe",
}
