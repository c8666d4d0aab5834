package index

var (
	bMeta  = []byte("meta")  // slug -> PostRecord json
	bOrder = []byte("order") // position(4) -> slug, index order
	bFP    = []byte("fp")    // artifact name -> fingerprint hex

	bIdxDate = []byte("idx_date") // invTime + slug
	bIdxTag  = []byte("idx_tag")  // lower(tag) -> sub-bucket, value = tag as written
	bIdxCat  = []byte("idx_cat")  // category -> sub-bucket
)
