package risk

// Province is one of Turkey's 81 provinces, keyed by its plate code.
type Province struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Tier Tier   `json:"tier"`
}

// Hazard degrees per AFAD 2018 hazard map and DASK risk groups.
// Index i holds plate code i+1.
var provinces = [81]Province{
	{1, "Adana", Tier2},
	{2, "Adıyaman", Tier2},
	{3, "Afyonkarahisar", Tier1},
	{4, "Ağrı", Tier3},
	{5, "Aksaray", Tier1},
	{6, "Amasya", Tier3},
	{7, "Ankara", Tier2},
	{8, "Antalya", Tier3},
	{9, "Ardahan", Tier5},
	{10, "Artvin", Tier5},
	{11, "Aydın", Tier1},
	{12, "Balıkesir", Tier1},
	{13, "Bartın", Tier5},
	{14, "Batman", Tier2},
	{15, "Bayburt", Tier5},
	{16, "Bilecik", Tier2},
	{17, "Bingöl", Tier1},
	{18, "Bitlis", Tier2},
	{19, "Bolu", Tier1},
	{20, "Burdur", Tier1},
	{21, "Bursa", Tier1},
	{22, "Çanakkale", Tier2},
	{23, "Çankırı", Tier3},
	{24, "Çorum", Tier3},
	{25, "Denizli", Tier1},
	{26, "Diyarbakır", Tier2},
	{27, "Düzce", Tier1},
	{28, "Edirne", Tier2},
	{29, "Elazığ", Tier1},
	{30, "Erzincan", Tier1},
	{31, "Erzurum", Tier1},
	{32, "Eskişehir", Tier3},
	{33, "Gaziantep", Tier3},
	{34, "Giresun", Tier5},
	{35, "Gümüşhane", Tier5},
	{36, "Hakkari", Tier2},
	{37, "Hatay", Tier1},
	{38, "Iğdır", Tier4},
	{39, "Isparta", Tier1},
	{40, "İstanbul", Tier1},
	{41, "İzmir", Tier1},
	{42, "Kahramanmaraş", Tier1},
	{43, "Karabük", Tier3},
	{44, "Karaman", Tier4},
	{45, "Kars", Tier4},
	{46, "Kastamonu", Tier3},
	{47, "Kayseri", Tier3},
	{48, "Kilis", Tier3},
	{49, "Kırıkkale", Tier3},
	{50, "Kırklareli", Tier2},
	{51, "Kırşehir", Tier3},
	{52, "Kocaeli", Tier1},
	{53, "Konya", Tier3},
	{54, "Kütahya", Tier1},
	{55, "Malatya", Tier2},
	{56, "Manisa", Tier1},
	{57, "Mardin", Tier3},
	{58, "Mersin", Tier4},
	{59, "Muğla", Tier1},
	{60, "Muş", Tier3},
	{61, "Nevşehir", Tier3},
	{62, "Niğde", Tier3},
	{63, "Ordu", Tier4},
	{64, "Osmaniye", Tier1},
	{65, "Rize", Tier5},
	{66, "Sakarya", Tier1},
	{67, "Samsun", Tier4},
	{68, "Siirt", Tier2},
	{69, "Sinop", Tier5},
	{70, "Sivas", Tier3},
	{71, "Şanlıurfa", Tier4},
	{72, "Şırnak", Tier2},
	{73, "Tekirdağ", Tier2},
	{74, "Tokat", Tier1},
	{75, "Trabzon", Tier5},
	{76, "Tunceli", Tier1},
	{77, "Uşak", Tier2},
	{78, "Van", Tier1},
	{79, "Yalova", Tier1},
	{80, "Yozgat", Tier3},
	{81, "Zonguldak", Tier3},
}

// TierOf never fails: ids outside the table get DefaultTier.
func TierOf(provinceID int) Tier {
	if p, ok := ProvinceOf(provinceID); ok {
		return p.Tier
	}
	return DefaultTier
}

func ProvinceOf(provinceID int) (Province, bool) {
	if provinceID < 1 || provinceID > len(provinces) {
		return Province{}, false
	}
	return provinces[provinceID-1], true
}

// Provinces returns a fresh copy of the table in plate-code order.
func Provinces() []Province {
	out := make([]Province, len(provinces))
	copy(out, provinces[:])
	return out
}
